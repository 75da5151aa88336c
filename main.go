package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rm-hull/pngedit/cmd"
	"github.com/rm-hull/pngedit/internal"
	"github.com/rm-hull/pngedit/internal/edit"
	"github.com/spf13/cobra"
)

func main() {
	var gamma float64
	var sigbits []int
	var iccProfilePath string
	var chunkSpecs []string

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	rootCmd := &cobra.Command{
		Use:     "pngedit",
		Long:    `Streaming PNG chunk editor`,
		Version: internal.Version(),
	}

	editCmd := &cobra.Command{
		Use:   "edit [--gamma <g>] [--sigbit <bits>] [--iccprofile <path>] [--chunk <spec>]... <input> <output>",
		Short: "Rewrite the chunk sequence of a PNG file",
		Long: `Rewrite the chunk sequence of a PNG file in a single streamed pass,
without decoding pixel data.

Chunk specs take a 4-letter type followed by one of:
  TYPE!       delete all chunks of this type
  TYPE:text   set the chunk payload to the given text
  TYPE<path   set the chunk payload to the contents of a file`,
		Args: cobra.ExactArgs(2),
		Run: func(c *cobra.Command, args []string) {
			directives := buildDirectives(c, gamma, sigbits, iccProfilePath, chunkSpecs)
			if err := cmd.Edit(args[0], args[1], directives, strictMode()); err != nil {
				log.Fatal(err)
			}
		},
	}

	editCmd.Flags().Float64Var(&gamma, "gamma", 0, "Set image gamma (e.g. 2.2)")
	editCmd.Flags().IntSliceVar(&sigbits, "sigbit", nil, "Set significant bits per channel (1 to 3 values)")
	editCmd.Flags().StringVar(&iccProfilePath, "iccprofile", "", "Embed ICC profile read from file")
	editCmd.Flags().StringArrayVar(&chunkSpecs, "chunk", nil, "Generic chunk edit: TYPE!, TYPE:text or TYPE<path (repeatable)")

	listCmd := &cobra.Command{
		Use:   "list <input>",
		Short: "Dump the chunk sequence of a PNG file",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := cmd.List(args[0], os.Stdout); err != nil {
				log.Fatal(err)
			}
		},
	}

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func buildDirectives(c *cobra.Command, gamma float64, sigbits []int, iccProfilePath string, chunkSpecs []string) []edit.Directive {
	var directives []edit.Directive

	if c.Flags().Changed("gamma") {
		directives = append(directives, edit.Gamma(gamma))
	}
	if c.Flags().Changed("sigbit") {
		if len(sigbits) < 1 || len(sigbits) > 3 {
			usageError(c, fmt.Errorf("--sigbit expects 1 to 3 values, got %d", len(sigbits)))
		}
		directives = append(directives, edit.SigBits(sigbits...))
	}
	if iccProfilePath != "" {
		profile, err := os.ReadFile(iccProfilePath)
		if err != nil {
			log.Fatalf("failed to read ICC profile: %v", err)
		}
		directives = append(directives, edit.ICCProfile(profile))
	}
	for _, spec := range chunkSpecs {
		d, err := edit.ParseChunkSpec(spec)
		if err != nil {
			usageError(c, err)
		}
		directives = append(directives, d)
	}

	return directives
}

func usageError(c *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	_ = c.Usage()
	os.Exit(2)
}

func strictMode() bool {
	strict, err := strconv.ParseBool(os.Getenv("PNGEDIT_STRICT"))
	return err == nil && strict
}
