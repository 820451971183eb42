// Package carousel renders social-media slide carousels to PNG images using
// a shared headless Chrome.
//
// # Quick Start
//
// Create a browser manager and a renderer, then render a request against a
// server that hosts the slide render target:
//
//	launcher, err := carousel.NewLauncher(carousel.EngineRod, carousel.DefaultLaunchConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	manager := carousel.NewBrowserManager(launcher)
//	defer manager.Close()
//
//	renderer := carousel.NewRenderer(manager)
//	result, err := renderer.Render(ctx, "http://localhost:8080", &carousel.Request{
//	    Slides: carousel.Slides{
//	        carousel.CoverSlide{Title: "Ten Go tips"},
//	        carousel.EndSlide{Headline: "Follow for more", Highlight: "more"},
//	    },
//	})
//
// # Slides
//
// A slide is one of CoverSlide, ContentSlide or EndSlide. On the wire each is
// a JSON object carrying a "type" field of "cover", "content" or "end".
// ParseRequest decodes and validates a request body in one step.
//
// # Rendering Pipeline
//
// For each slide the renderer:
//
//  1. Opens a fresh isolated tab on the shared browser
//  2. Sets the viewport (1080x1080 at scale 2 by default)
//  3. Loads {baseURL}/render?page={index}&data={slides JSON}
//  4. Waits for network idle, then for document.fonts (or a short sleep)
//  5. Captures a PNG screenshot and closes the tab
//
// Failed slides are retried with a linear backoff. At most three slides of a
// batch render concurrently by default. Results keep the input order.
//
// # Browser Lifecycle
//
// BrowserManager keeps a single browser for the process. It is launched on
// first use, reused across requests, and replaced when it disconnects or has
// been idle for five minutes. Two engines are available: go-rod (default) and
// chromedp.
//
// # Failure Policy
//
// By default a batch fails if any slide fails: Render returns the result
// together with an *AggregateRenderError. WithPartialResults(true) returns
// the result without an error so callers can keep the slides that rendered.
//
// # Error Handling
//
// Validation errors match ErrInvalidRequest and are returned before any
// browser is started:
//
//	_, err := renderer.Render(ctx, baseURL, req)
//	var verr *carousel.ValidationError
//	if errors.As(err, &verr) {
//	    // respond 400
//	}
//
// Other sentinels: ErrBrowserLaunch, ErrNavigation, ErrScreenshot,
// ErrRenderFailed, ErrManagerClosed.
package carousel
