package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ketoprak/askandsign/internal/websocket"
)

var signSendURL string

var signSendCmd = &cobra.Command{
	Use:   "send [phrase]",
	Short: "Send a phrase to a running sign server and print the clips it returns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := signSendURL
		if url == "" {
			url = sessionURL(cfg.Sign.Addr)
		}

		client, err := websocket.DialSession(cmd.Context(), url, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		out, err := client.SendPhrase(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printDispatch(cmd.OutOrStdout(), out)
		return nil
	},
}

// sessionURL turns a listen address like ":8080" into a local websocket URL.
func sessionURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "ws://" + addr + "/ws"
}

func printDispatch(w io.Writer, out *websocket.DispatchMessage) {
	for _, c := range out.Clips {
		fmt.Fprintf(w, "%s\t%s\n", c.Title, c.URL)
	}
	for _, word := range out.Unmatched {
		fmt.Fprintln(w, pterm.Yellow("no sign for '"+word+"'"))
	}
	if out.Message != "" {
		fmt.Fprintln(w, out.Message)
	}
}

func init() {
	signSendCmd.Flags().StringVar(&signSendURL, "url", "", "session URL (default derived from sign.addr)")
	signCmd.AddCommand(signSendCmd)
}
