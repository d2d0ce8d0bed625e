package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jacoelho/lookahead"
	"github.com/jacoelho/lookahead/internal/envconfig"
	"github.com/jacoelho/lookahead/internal/logutil"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lookahead",
		Short: "Stream files through a rewindable two-chunk buffer",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			chunkSize, _ := cmd.Flags().GetInt("chunk-size")
			newLogger(cmd).Debug("lookahead config", "chunk_size", chunkSize, "env", envconfig.Values())
		},
	}

	rootCmd.PersistentFlags().IntP("chunk-size", "c", envconfig.ChunkSize(), "Size of one buffer chunk in bytes")
	rootCmd.PersistentFlags().BoolP("verbose", "v", envconfig.Debug(), "Log chunk loads and refused take backs to stderr")

	cobra.EnableCommandSorting = false

	dumpCmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print bytes in hex, take some back and print the rest as characters",
		Args:  cobra.ExactArgs(1),
		RunE:  DumpHandler,
	}
	dumpCmd.Flags().IntP("bytes", "n", 16, "Number of bytes to print in hex")
	dumpCmd.Flags().IntP("take-back", "t", 8, "Number of bytes to take back after the hex dump")

	catCmd := &cobra.Command{
		Use:   "cat FILE...",
		Short: "Copy files to stdout through the buffer",
		Long:  "Copy files to stdout through the buffer. A FILE of - reads stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  CatHandler,
	}
	catCmd.Flags().Bool("ascii", false, "Fail on the first byte that is not ASCII")

	statCmd := &cobra.Command{
		Use:   "stat FILE",
		Short: "Read a file to the end and print buffer statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  StatHandler,
	}

	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["LOOKAHEAD_CHUNK_SIZE"], envVars["LOOKAHEAD_DEBUG"]}
	for _, cmd := range []*cobra.Command{rootCmd, dumpCmd, catCmd, statCmd} {
		appendEnvDocs(cmd, envs)
	}

	rootCmd.AddCommand(dumpCmd, catCmd, statCmd)

	return rootCmd
}

func DumpHandler(cmd *cobra.Command, args []string) error {
	n, err := cmd.Flags().GetInt("bytes")
	if err != nil {
		return err
	}

	takeBack, err := cmd.Flags().GetInt("take-back")
	if err != nil {
		return err
	}

	b, err := openBuffer(cmd, args[0])
	if err != nil {
		return err
	}
	defer b.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Buffer %#v\n\n", b)

	for range n {
		c, err := b.TakeByte()
		if errors.Is(err, lookahead.ErrEndOfInput) {
			break
		} else if err != nil {
			return err
		}
		fmt.Fprintf(out, "0x%02X\n", c)
	}

	fmt.Fprintln(out, "Take back!")
	if _, err := b.TakeBack(takeBack); err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	if err := copyChars(w, b, args[0]); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nBuffer %#v\n", b)
	return nil
}

func CatHandler(cmd *cobra.Command, args []string) error {
	ascii, err := cmd.Flags().GetBool("ascii")
	if err != nil {
		return err
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for _, name := range args {
		if err := catFile(cmd, w, name, ascii); err != nil {
			w.Flush()
			return err
		}
	}
	return w.Flush()
}

func catFile(cmd *cobra.Command, w io.Writer, name string, ascii bool) error {
	b, err := openBuffer(cmd, name)
	if err != nil {
		return err
	}
	defer b.Close()

	if ascii {
		return copyChars(w, b, name)
	}

	if _, err := b.WriteTo(w); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func StatHandler(cmd *cobra.Command, args []string) error {
	b, err := openBuffer(cmd, args[0])
	if err != nil {
		return err
	}
	defer b.Close()

	var lines int64
	for {
		c, err := b.TakeByte()
		if errors.Is(err, lookahead.ErrEndOfInput) {
			break
		} else if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if c == '\n' {
			lines++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:       %s\n", args[0])
	fmt.Fprintf(out, "Chunk size: %s\n", humanize.IBytes(uint64(b.ChunkSize())))
	fmt.Fprintf(out, "Capacity:   %s\n", humanize.IBytes(uint64(b.Capacity())))
	fmt.Fprintf(out, "Consumed:   %s\n", humanize.Bytes(uint64(b.Offset())))
	fmt.Fprintf(out, "Lines:      %s\n", humanize.Comma(lines))
	return nil
}

// copyChars writes characters from b to w until the end of input.
func copyChars(w io.Writer, b *lookahead.Buffer, name string) error {
	var buf [1]byte
	for {
		c, err := b.TakeChar()
		switch {
		case errors.Is(err, lookahead.ErrEndOfInput):
			return nil
		case errors.Is(err, lookahead.ErrInvalidInput):
			return fmt.Errorf("%s: offset %d: %w", name, b.Offset()-1, err)
		case err != nil:
			return fmt.Errorf("%s: %w", name, err)
		}
		buf[0] = byte(c)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
}

func openBuffer(cmd *cobra.Command, name string) (*lookahead.Buffer, error) {
	chunkSize, err := cmd.Flags().GetInt("chunk-size")
	if err != nil {
		return nil, err
	}

	var src io.ReadCloser
	if name == "-" {
		src = io.NopCloser(cmd.InOrStdin())
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		src = f
	}

	b, err := lookahead.New(src, chunkSize, lookahead.WithLogger(newLogger(cmd)))
	if err != nil {
		src.Close()
		return nil, err
	}
	return b, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logutil.NewLogger(cmd.ErrOrStderr(), logutil.Level(verbose))
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}
