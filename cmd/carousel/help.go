package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: carousel <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP rendering service")
	fmt.Fprintln(w, "  render     Render a request file to PNG files")
	fmt.Fprintln(w, "  doctor     Check the browser and theme setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'carousel help <command>' for details on a specific command.")
}

// printSettingsUsage prints the flags shared by serve, render and doctor.
func printSettingsUsage(w io.Writer) {
	fmt.Fprintln(w, "Config:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --engine <s>          Browser engine: rod, chromedp")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium executable")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox (containers)")
	fmt.Fprintln(w, "      --idle-timeout <d>    Replace the browser after this idle time (default 5m)")
	fmt.Fprintln(w, "      --browser-flag <s>    Extra Chrome flag, name or name=value (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -j, --concurrency <n>     Tabs rendered in parallel (1-16, default 3)")
	fmt.Fprintln(w, "      --max-pages <n>       Maximum slides per request (default 20)")
	fmt.Fprintln(w, "      --retries <n>         Retries per slide after the first attempt (default 2)")
	fmt.Fprintln(w, "      --backoff <d>         Base wait between retries, grows linearly (default 1s)")
	fmt.Fprintln(w, "      --nav-timeout <d>     Per-navigation timeout (default 30s)")
	fmt.Fprintln(w, "      --font-fallback <d>   Wait used when font readiness is unknown (default 2s)")
	fmt.Fprintln(w, "      --partial             Keep rendered slides when others fail")
	fmt.Fprintln(w, "      --width <n>           Viewport width (default 1080)")
	fmt.Fprintln(w, "      --height <n>          Viewport height (default 1080)")
	fmt.Fprintln(w, "      --scale <f>           Device scale factor (default 2)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Theme:")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory (styles/, templates/)")
	fmt.Fprintln(w, "      --style <name>        Style name")
	fmt.Fprintln(w, "      --template-set <name> Template set name")
	fmt.Fprintln(w, "      --brand <s>           Brand label")
	fmt.Fprintln(w, "      --button-text <s>     Default end slide button text")
	fmt.Fprintln(w, "      --direction <s>       Text direction: auto, ltr, rtl")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging, console format")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      json, console")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: carousel serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP rendering service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /api/generate        Render a batch, returns base64 PNG data URIs")
	fmt.Fprintln(w, "  GET  /render              Render target loaded by the browser")
	fmt.Fprintln(w, "  GET  /healthz             Liveness and browser status")
	fmt.Fprintln(w, "  GET  /metrics             Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :3000)")
	fmt.Fprintln(w, "      --base-url <url>      Address the browser uses to reach this server")
	fmt.Fprintln(w, "      --shutdown-timeout <d> Grace period for in-flight requests (default 30s)")
	fmt.Fprintln(w, "      --max-body <n>        Maximum request body in bytes (default 1MiB)")
	fmt.Fprintln(w)
	printSettingsUsage(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: carousel render <request.json|-> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a request file to one PNG per slide. Use - to read stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default .)")
	fmt.Fprintln(w, "      --pattern <s>         File name pattern (default slide-%02d.png)")
	fmt.Fprintln(w)
	printSettingsUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: carousel doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the browser, environment and theme setup.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor:")
	fmt.Fprintln(w, "      --json                Print the report as JSON")
	fmt.Fprintln(w, "      --launch              Also start the browser once")
	fmt.Fprintln(w)
	printSettingsUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: carousel version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: carousel help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
