package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bft-labs/slotkeeper/internal/adapters/fs"
	logAdapter "github.com/bft-labs/slotkeeper/internal/adapters/log"
	"github.com/bft-labs/slotkeeper/internal/cliconfig"
	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/pkg/slotkeeper"
	"github.com/bft-labs/slotkeeper/plugins/slotwatch"
)

// parseSlot accepts a slot number or "quick" for the quicksave.
func parseSlot(arg string) (domain.SlotID, error) {
	if strings.EqualFold(arg, "quick") {
		return domain.QuickSlot, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidSlot, arg)
	}
	return domain.SlotID(n), nil
}

func (c *cli) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List slots and the auto-save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.printSlots(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !c.cfg.Watch {
				return nil
			}
			return c.watch(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&c.cfg.Watch, "watch", "w", c.cfg.Watch, "keep running and report changes")
	return cmd
}

func (c *cli) printSlots(w io.Writer) error {
	store := c.store()
	slots, err := store.List(domain.AllSlots(c.cfg.ManualSlots))
	if err != nil {
		return err
	}
	for _, s := range slots {
		fmt.Fprintln(w, formatSlot(s))
	}
	auto, err := store.AutoStat()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, formatAuto(auto))
	return nil
}

func formatSlot(s domain.Slot) string {
	name := fmt.Sprintf("%-10s", s.ID.String())
	if !s.HasBlob {
		return name + "  empty"
	}
	line := fmt.Sprintf("%s  %-8s  %s", name, humanize.Bytes(uint64(s.BlobSize)), humanize.Time(s.BlobModifiedAt))
	if !s.HasThumbnail {
		line += "  (no thumbnail)"
	}
	return line
}

func formatAuto(a domain.AutoSaveRecord) string {
	name := fmt.Sprintf("%-10s", "auto-save")
	if !a.HasBlob {
		return name + "  empty"
	}
	return fmt.Sprintf("%s  %-8s  %s", name, humanize.Bytes(uint64(a.BlobSize)), humanize.Time(a.BlobModifiedAt))
}

func (c *cli) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <slot>",
		Short: "Show one slot in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			store := c.store()
			s, err := store.Stat(id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "slot:      %s\n", s.ID)
			if !s.HasBlob {
				fmt.Fprintln(w, "state:     empty")
				return nil
			}
			fmt.Fprintf(w, "file:      %s\n", store.BlobPath(id))
			fmt.Fprintf(w, "size:      %s (%s bytes)\n", humanize.Bytes(uint64(s.BlobSize)), humanize.Comma(s.BlobSize))
			fmt.Fprintf(w, "saved:     %s (%s)\n", s.BlobModifiedAt.Format("2006-01-02 15:04:05"), humanize.Time(s.BlobModifiedAt))
			if p, ok := store.ThumbnailPath(id); ok {
				fmt.Fprintf(w, "thumbnail: %s\n", p)
			} else {
				fmt.Fprintln(w, "thumbnail: none")
			}
			return nil
		},
	}
}

func (c *cli) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a slot and its thumbnail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			if err := c.store().Delete(cmd.Context(), id); err != nil {
				return err
			}
			c.log.Info().Str("slot", id.String()).Msg("slot deleted")
			return nil
		},
	}
}

func (c *cli) clearAutoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-auto",
		Short: "Remove the auto-save so the next session starts fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store().ClearAuto(cmd.Context()); err != nil {
				return err
			}
			c.log.Info().Msg("auto-save cleared")
			return nil
		},
	}
}

func (c *cli) exportCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "export <slot> <file>",
		Short: "Copy a slot's state blob to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			data, err := c.store().ReadBlob(cmd.Context(), id)
			if err != nil {
				return err
			}
			flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if !force {
				flag |= os.O_EXCL
			}
			f, err := os.OpenFile(args[1], flag, 0o600)
			if err != nil {
				return err
			}
			if _, err := f.Write(data); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			c.log.Info().Str("slot", id.String()).Str("file", args[1]).Str("size", humanize.Bytes(uint64(len(data)))).Msg("slot exported")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (c *cli) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report slot changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.watch(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// watch runs the directory watcher until SIGINT or SIGTERM.
func (c *cli) watch(parent context.Context, w io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := c.store()
	watcher := slotwatch.New(slotwatch.DefaultConfig())
	err := watcher.Initialize(ctx, slotkeeper.PluginConfig{
		SaveDir:     c.cfg.SaveDir,
		ManualSlots: c.cfg.ManualSlots,
		Logger:      logAdapter.NewZerologAdapterWithLogger(c.log),
		Events:      &changePrinter{w: w, store: store},
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	c.log.Info().Str("dir", c.cfg.SaveDir).Msg("watching for changes")

	<-ctx.Done()
	c.log.Info().Msg("received signal, stopping...")
	if err := watcher.Shutdown(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stop watcher: %w", err)
	}
	return nil
}

// changePrinter prints the current state of every changed slot.
type changePrinter struct {
	slotkeeper.BaseEventHandler
	w     io.Writer
	store *fs.SlotStore
}

func (p *changePrinter) OnSlotsChanged(ev slotkeeper.SlotsChangedEvent) {
	slots, err := p.store.List(ev.Slots)
	if err != nil {
		fmt.Fprintf(p.w, "list changed slots: %v\n", err)
		return
	}
	for _, s := range slots {
		fmt.Fprintln(p.w, formatSlot(s))
	}
	if ev.AutoSave {
		auto, err := p.store.AutoStat()
		if err != nil {
			fmt.Fprintf(p.w, "stat auto-save: %v\n", err)
			return
		}
		fmt.Fprintln(p.w, formatAuto(auto))
	}
}

func (c *cli) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cliconfig.EncodeFileConfig(c.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
