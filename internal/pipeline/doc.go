// Package pipeline paints a single carousel slide as a standalone HTML page.
//
// The page is what the headless browser loads and screenshots:
//   - Content paragraphs go through goldmark (GFM, ==highlight== marks,
//     inline-styled code highlighting). Raw HTML is never enabled.
//   - End slide headlines are split around the first occurrence of the
//     highlight text so it can be painted in the accent color.
//   - The slide body is wrapped in the layout template with the inlined
//     stylesheet and logo, so the page needs no further network requests
//     once loaded.
//
// Screenshots and browser control live in the root carousel package.
package pipeline
