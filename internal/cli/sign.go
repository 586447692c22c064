package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/adapters/display"
	"github.com/ketoprak/askandsign/adapters/microphone"
	"github.com/ketoprak/askandsign/adapters/stt"
	"github.com/ketoprak/askandsign/domain/repositories"
	"github.com/ketoprak/askandsign/internal/api"
	"github.com/ketoprak/askandsign/internal/config"
	"github.com/ketoprak/askandsign/internal/playback"
	"github.com/ketoprak/askandsign/internal/websocket"
	"github.com/ketoprak/askandsign/usecase"
)

var (
	signTextOnly bool
	signAddr     string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Translate speech or typed phrases into sign language GIFs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		table, err := cfg.PhraseTable()
		if err != nil {
			return err
		}

		console := ptermConsole{}
		player := newPlayer(cfg.Sign, display.NewTerminal(cfg.Sign.DisplayCols, logger))
		signs := usecase.NewSignService(table, player, console, logger)

		var (
			mic    repositories.Microphone
			speech repositories.SpeechToText
		)
		if !signTextOnly {
			if google, closer := openSpeech(ctx, cfg.Sign); google != nil {
				defer closer.Close()
				speech = google
				mic = microphone.New(microphone.Config{
					Command:         cfg.Sign.Recorder,
					Device:          cfg.Sign.Device,
					SampleRate:      cfg.Sign.SampleRate,
					PhraseLimit:     cfg.Sign.PhraseLimit,
					EnergyThreshold: cfg.Sign.EnergyThreshold,
					Language:        cfg.Sign.Language,
				}, logger)
			}
		}

		pterm.DefaultHeader.WithFullWidth().Println("Speech to Sign Language Translator")
		return usecase.NewTranslatorService(signs, mic, speech, console, logger).Run(ctx)
	},
}

var signServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sign assets, lookup API and websocket session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if signAddr != "" {
			cfg.Sign.Addr = signAddr
		}

		table, err := cfg.PhraseTable()
		if err != nil {
			return err
		}

		var speech repositories.SpeechToText
		if !signTextOnly {
			if google, closer := openSpeech(ctx, cfg.Sign); google != nil {
				defer closer.Close()
				speech = google
			}
		}

		hub := websocket.NewHub(table, speech, api.AssetsPrefix, logger)
		go hub.Run(ctx)

		e := api.NewServer(logger)
		api.InitSignRoutes(e, hub, cfg.Sign.AssetsDir, logger)

		return runServer(ctx, e, cfg.Sign.Addr, logger)
	},
}

var signCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every phrase has a playable GIF",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := cfg.PhraseTable()
		if err != nil {
			return err
		}

		player := newPlayer(cfg.Sign, nil)
		reports := player.Check(table)
		if failed := printReports(cmd.OutOrStdout(), reports); failed > 0 {
			return fmt.Errorf("%d of %d assets failed in %s", failed, len(reports), cfg.Sign.AssetsDir)
		}
		pterm.Success.Println("All GIF files are working properly!")
		return nil
	},
}

func newPlayer(sc config.SignConfig, d repositories.Display) *playback.Player {
	return playback.NewPlayer(playback.Options{
		AssetsDir:     sc.AssetsDir,
		MaxWidth:      sc.MaxWidth,
		Loops:         sc.Loops,
		FrameInterval: sc.FrameInterval,
		Hold:          sc.Hold,
	}, d, logger)
}

// openSpeech creates the Google recognizer. Failures are reported and
// leave speech input disabled.
func openSpeech(ctx context.Context, sc config.SignConfig) (repositories.SpeechToText, io.Closer) {
	google, err := stt.NewGoogleSpeechToText(ctx, sc.CredentialsFile, logger)
	if err != nil {
		logger.Warn("Speech recognition unavailable", zap.Error(err))
		pterm.Warning.Println("Speech recognition unavailable, falling back to typed phrases")
		return nil, nil
	}
	return google, google
}

func printReports(w io.Writer, reports []playback.AssetReport) int {
	rows := pterm.TableData{{"Phrase", "File", "Size", "Frames", "Status"}}
	failed := 0
	for _, r := range reports {
		status := pterm.Green("ok")
		size := fmt.Sprintf("%dx%d", r.Width, r.Height)
		if !r.OK() {
			failed++
			status = pterm.Red(r.Err.Error())
			size = "-"
		}
		rows = append(rows, []string{r.Phrase, r.File, size, fmt.Sprint(r.Frames), status})
	}
	out, _ := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	fmt.Fprintln(w, out)
	return failed
}

func init() {
	signCmd.PersistentFlags().BoolVar(&signTextOnly, "text", false, "disable speech input")
	signServeCmd.Flags().StringVar(&signAddr, "addr", "", "listen address (overrides sign.addr)")
	signCmd.AddCommand(signServeCmd, signCheckCmd)
	rootCmd.AddCommand(signCmd)
}
