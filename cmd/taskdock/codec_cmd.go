package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskdock/taskdock/internal/codec"
	"github.com/taskdock/taskdock/internal/models"
)

var (
	decodeMode   string
	encodeWithID bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a task text payload into task attributes",
	Long:  `Reads a task text payload from a file (or stdin) and prints the decoded task attributes as JSON. Decoding never fails; absent or unrecognized markers fall back to their defaults.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDecode,
}

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode task attributes into a task text payload",
	Long:  `Reads task attributes as JSON from a file (or stdin) and prints the text payload the panel would send to the host.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEncode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeMode, "mode", "code", "Ambient mode for payloads that carry none")
	encodeCmd.Flags().BoolVar(&encodeWithID, "with-id", false, "Embed the TaskId marker (edit payload form)")
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(cmd.InOrStdin())
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	d := codec.Decode(string(data), decodeMode)
	out, err := json.MarshalIndent(d.Task(""), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return fmt.Errorf("parse task json: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), codec.Encode(task, encodeWithID))
	return nil
}
