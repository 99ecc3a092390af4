package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/lumen-ui/lumen"
	"github.com/lumen-ui/lumen/pkg/assets"
	"github.com/lumen-ui/lumen/pkg/driver"
	"github.com/lumen-ui/lumen/pkg/middleware"
	"github.com/lumen-ui/lumen/pkg/protocol"
	"github.com/lumen-ui/lumen/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		addr      string
		assetsDir string
		s3Bucket  string
		s3Prefix  string
		s3Region  string
		tracing   bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application",
		Long: `Serve the built-in demo application: a counter with a server-side
clock, streaming patches to connected browsers.

Examples:
  lumen serve
  lumen serve --addr=:3000 --assets-dir=public
  lumen serve --s3-bucket=my-bucket --s3-prefix=assets/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, assetsDir, s3Bucket, s3Prefix, s3Region, tracing, verbose)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&assetsDir, "assets-dir", "", "Serve static assets from this directory")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "Serve static assets from this S3 bucket")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "assets/", "Key prefix inside the S3 bucket")
	cmd.Flags().StringVar(&s3Region, "s3-region", "us-east-1", "S3 bucket region")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Trace queries via the global OpenTelemetry provider")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runServe(addr, assetsDir, s3Bucket, s3Prefix, s3Region string, tracing, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var store assets.Store
	switch {
	case s3Bucket != "":
		client := s3.New(s3.Options{Region: s3Region})
		store = assets.NewS3Store(client, s3Bucket, s3Prefix)
	case assetsDir != "":
		store = assets.NewDirStore(assetsDir)
	}

	opts := []driver.Option{middleware.Prometheus()}
	if tracing {
		opts = append(opts, middleware.OpenTelemetry())
	}

	app, err := lumen.New(lumen.Config{
		Address: addr,
		Assets:  store,
		Logger:  logger,
	}, func(engine lumen.Engine) lumen.Handle {
		return lumen.RunUI(demo{}, demoState{}, engine, opts...)
	})
	if err != nil {
		return err
	}

	printBanner()
	fmt.Println()
	success("demo application mounted")
	info("listening on %s", addr)
	info("metrics at /metrics, health at /healthz")
	if store != nil {
		info("assets at /assets/")
	}
	fmt.Println()

	return app.Run()
}

// demoState is the state of the demo component.
type demoState struct {
	Count int
	Ticks int
}

// startClock is dispatched once at mount.
type startClock struct{}

// tock is fed back through the driver by the clock subscription.
type tock struct{}

// demo is a counter with a server-side clock. Clicks increment the counter;
// the clock ticks once a second. Each tick batches its mutation with a
// deferred render decision, so the end-of-query render covers it.
type demo struct{}

func (demo) Render(s demoState) (*vdom.VNode, []lumen.Hook) {
	return vdom.Element("div", vdom.Props{"class": "demo"},
		vdom.Element("h1", nil, vdom.Text("Lumen demo")),
		vdom.Element("p", vdom.Props{"class": "count"},
			vdom.Text("Count: "+strconv.Itoa(s.Count))),
		vdom.Element("p", vdom.Props{"class": "ticks"},
			vdom.Text("Uptime: "+strconv.Itoa(s.Ticks)+"s")),
		vdom.Element("button", vdom.Props{"data-action": "click"},
			vdom.Text("Increment")),
	), nil
}

func (demo) Initialize() any {
	return startClock{}
}

func (demo) Interpret(query any) lumen.Op {
	switch query.(type) {
	case *protocol.Event:
		return lumen.Modify{
			Fn: func(s any) any {
				d := s.(demoState)
				d.Count++
				return d
			},
			Then: lumen.Done{},
		}

	case startClock:
		src := make(chan any)
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for range ticker.C {
				src <- tock{}
			}
		}()
		return lumen.Subscribe{Source: src, Then: lumen.Done{}}

	case tock:
		return lumen.Modify{
			Fn: func(s any) any {
				d := s.(demoState)
				d.Ticks++
				return d
			},
			Then: lumen.Render{Decision: lumen.Hold(), Then: lumen.Done{}},
		}
	}
	return lumen.Done{}
}
