package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wayfocus/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running applet's slot assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

func runStatus() error {
	_, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := ipc.SendCommand(ctx, ipc.Request{Command: "status"})
	if err != nil {
		return fmt.Errorf("applet daemon not reachable at %s: %w", ipc.SocketPath(), err)
	}
	if resp.Status != "success" {
		return fmt.Errorf("status query failed: %s", resp.Message)
	}

	if resp.Degraded {
		fmt.Println("warning: running on stale data, an input source is unavailable")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tAPP\tNAME\tPINNED\tWINDOWS")
	for _, slot := range resp.Slots {
		key := "-"
		if slot.Digit >= 0 {
			key = fmt.Sprintf("%d", slot.Digit)
		}
		pinned := ""
		if slot.Pinned {
			pinned = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			key, slot.AppID, slot.Name, pinned, slot.Windows)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for slot, msg := range resp.BindingErrors {
		fmt.Fprintf(os.Stderr, "binding error on key %d: %s\n", (slot+1)%10, msg)
	}
	return nil
}
