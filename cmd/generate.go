package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zhubert/imagine/internal/backend"
	"github.com/zhubert/imagine/internal/capture"
	"github.com/zhubert/imagine/internal/config"
	"github.com/zhubert/imagine/internal/download"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/generation"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/refs"
	"github.com/zhubert/imagine/internal/session"
)

// generateOptions holds the flags of the generate command.
type generateOptions struct {
	prompt string
	images int
	seed   int
	aspect string
	model  string
	refs   []string
	save   bool
	out    string
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images without the TUI",
	Long: `Submits one prompt to the server, waits while the request is queued, and
writes the resulting images to a new folder under --out (the configured
download folder by default).

The server session is shared with the TUI: --model, --ref and --save
change it the same way the interface does.`,
	Example: `  imagine generate --prompt "a lighthouse at dusk"
  imagine generate -p "same scene, in winter" --model R2I --ref photo.jpg --images 2`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.prompt, "prompt", "p", "", "Description of the image (required)")
	f.IntVarP(&genOpts.images, "images", "n", generation.DefaultImages,
		fmt.Sprintf("Number of images (%d-%d)", generation.MinImages, generation.MaxImages))
	f.IntVar(&genOpts.seed, "seed", generation.RandomSeed, "Seed, -1 for random")
	f.StringVar(&genOpts.aspect, "aspect", "", "Aspect ratio: "+strings.Join(session.AspectRatios, ", "))
	f.StringVarP(&genOpts.model, "model", "m", "", "Model name or type (e.g. R2I); defaults to the session's model")
	f.StringArrayVar(&genOpts.refs, "ref", nil, "Reference image file (repeatable, reference models only)")
	f.BoolVar(&genOpts.save, "save", false, "Also ask the server to keep the images")
	f.StringVarP(&genOpts.out, "out", "o", "", "Folder for the images (default: configured download folder)")
	_ = generateCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	if err := logger.Init(logger.RunLogPath(runID)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logger.Close()

	ctx, stop := withShutdown(cmd.Context())
	defer stop()

	opts := genOpts
	if opts.out == "" {
		opts.out = cfg.GetDownloadDir()
	}
	_, err = generateImages(ctx, cfg, backend.New(cfg.GetServerURL()), opts, cmd.OutOrStdout())
	return err
}

// withShutdown cancels ctx on Ctrl-C or SIGTERM so a queued task stops
// polling.
func withShutdown(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// generateImages runs one generation against client and writes the results
// under opts.out. Progress goes to w.
func generateImages(ctx context.Context, cfg *config.Config, client *backend.Client, opts generateOptions, w io.Writer) (*download.Batch, error) {
	log := logger.WithComponent("generate")

	store := session.NewStore(session.DefaultCatalog())
	sessions := session.NewManager(client, store)
	if err := sessions.Reload(ctx); err != nil {
		return nil, userError("could not load the session", err)
	}

	if opts.model != "" {
		model, err := resolveModel(store.Catalog(), opts.model)
		if err != nil {
			return nil, err
		}
		if _, err := sessions.Switch(ctx, model); err != nil {
			return nil, userError("could not switch model", err)
		}
	}
	model := store.ActiveModel()

	if opts.save && !store.Snapshot().SavePreference {
		if err := sessions.SetSavePreference(ctx, true); err != nil {
			return nil, userError("could not update the session", err)
		}
	}

	if len(opts.refs) > 0 {
		if !store.Catalog().AcceptsReferences(model) {
			return nil, fmt.Errorf("%s does not use reference images", model)
		}
		if err := addReferences(ctx, refs.NewManager(client, store), opts.refs); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "Using %d reference image(s)\n", len(store.References()))
	}

	gen := generation.NewController(client, store, cfg.PollInterval(), cfg.PollTimeout())
	req := gen.NewRequest(opts.prompt)
	req.ImageCount = opts.images
	req.Seed = opts.seed
	if opts.aspect != "" {
		if !slices.Contains(session.AspectRatios, opts.aspect) {
			return nil, fmt.Errorf("unknown aspect ratio %q (want one of %s)", opts.aspect, strings.Join(session.AspectRatios, ", "))
		}
		req.AspectRatio = opts.aspect
	}

	fmt.Fprintf(w, "Generating %d image(s) with %s...\n", req.ImageCount, model)
	last := ""
	images, err := gen.Run(ctx, req, func(u generation.Update) {
		if text := u.Text(); text != last && !u.Phase.Terminal() {
			fmt.Fprintln(w, text)
			last = text
		}
	})
	if err != nil {
		log.Warn("generation failed", "error", err)
		return nil, userError("generation failed", err)
	}
	fmt.Fprintln(w, generation.GeneratedMessage(len(images)))

	batch, err := download.New(opts.out).SaveAll(images)
	if batch != nil {
		for _, f := range batch.Files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	if err != nil {
		return batch, userError("could not save the images", err)
	}
	if len(batch.Errors) > 0 {
		fmt.Fprintf(w, "%d image(s) could not be saved\n", len(batch.Errors))
	}
	log.Info("run finished", "dir", batch.Dir, "files", len(batch.Files))
	return batch, nil
}

// resolveModel accepts a display name or a model type such as "R2I".
func resolveModel(catalog *session.Catalog, name string) (string, error) {
	if catalog.Contains(name) {
		return name, nil
	}
	for _, n := range catalog.Names() {
		if strings.EqualFold(catalog.Type(n), name) || strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown model %q (available: %s)", name, strings.Join(catalog.Names(), ", "))
}

// addReferences uploads the files at paths. The first rejected file stops
// the run so a generation never starts with a partial set.
func addReferences(ctx context.Context, mgr *refs.Manager, paths []string) error {
	return capture.WithCapture(ctx, capture.Files{Paths: paths}, func(c *capture.Capture) error {
		if errs := c.Errors(); len(errs) > 0 {
			return userError("invalid reference image", errs[0])
		}
		res := mgr.AddMany(ctx, c.Images())
		if len(res.Errors) > 0 {
			return userError("could not add reference image", res.Errors[0])
		}
		return nil
	})
}

// userError prefixes the message a user would see in the TUI.
func userError(what string, err error) error {
	return fmt.Errorf("%s: %s", what, pErrors.UserMessage(err))
}
