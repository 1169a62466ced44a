package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"apicheck/internal/classfile"
	"apicheck/internal/classgraph"
)

var (
	surfaceFormat string
	surfacePolicy policyFlags
)

var surfaceCmd = &cobra.Command{
	Use:   "surface <dist>",
	Short: "Print the public API surface of one distribution",
	Long: `Load a single distribution and print every class in its published API
with the superclass, implemented interfaces, and the visible methods and
fields after inheritance resolution.

Examples:
  apicheck surface dist-1.5
  apicheck surface dist-1.5 --include=org.example.api --format=json`,
	Args: cobra.ExactArgs(1),
	RunE: runSurface,
}

func init() {
	surfaceCmd.Flags().StringVar(&surfaceFormat, "format", "", "Output format (human, json, yaml); defaults to report.format")
	surfacePolicy.register(surfaceCmd)

	rootCmd.AddCommand(surfaceCmd)
}

// SurfaceResponseCLI is the CLI response for surface
type SurfaceResponseCLI struct {
	Root       string            `json:"root" yaml:"root"`
	Archives   int               `json:"archives" yaml:"archives"`
	ClassFiles int               `json:"classFiles" yaml:"classFiles"`
	Classes    []SurfaceClassCLI `json:"classes" yaml:"classes"`
}

// SurfaceClassCLI is one visible class
type SurfaceClassCLI struct {
	Name       string   `json:"name" yaml:"name"`
	Kind       string   `json:"kind" yaml:"kind"`
	Superclass string   `json:"superclass,omitempty" yaml:"superclass,omitempty"`
	Interfaces []string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Methods    []string `json:"methods,omitempty" yaml:"methods,omitempty"`
	Fields     []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func runSurface(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()

	format := OutputFormat(cfg.Report.Format)
	if surfaceFormat != "" {
		format = OutputFormat(surfaceFormat)
	}

	loader, err := newLoader(&surfacePolicy)
	if err != nil {
		return err
	}
	dist, err := loader.Load(ctx, args[0])
	if err != nil {
		return err
	}

	resp := &SurfaceResponseCLI{
		Root:       dist.Root,
		Archives:   len(dist.Archives),
		ClassFiles: dist.ClassFiles,
		Classes:    convertSurface(dist.Registry),
	}
	output, err := FormatResponse(resp, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func convertSurface(reg *classgraph.Registry) []SurfaceClassCLI {
	visible := reg.VisibleAPI()
	out := make([]SurfaceClassCLI, 0, len(visible))
	for _, c := range visible {
		sc := SurfaceClassCLI{Name: c.String(), Kind: "class"}
		if c.Access()&classfile.AccInterface != 0 {
			sc.Kind = "interface"
		}
		if super := c.Superclass(); super != nil {
			sc.Superclass = super.String()
		}
		for _, iface := range c.Interfaces() {
			sc.Interfaces = append(sc.Interfaces, iface.String())
		}
		for _, m := range c.VisibleMethods() {
			sc.Methods = append(sc.Methods, m.Signature())
		}
		for _, f := range c.VisibleFields() {
			sc.Fields = append(sc.Fields, f.Signature())
		}
		out = append(out, sc)
	}
	return out
}

func formatSurfaceHuman(resp *SurfaceResponseCLI) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("API surface of %s (%d archives, %d class files, %d public classes)\n\n",
		resp.Root, resp.Archives, resp.ClassFiles, len(resp.Classes)))
	for _, c := range resp.Classes {
		sb.WriteString(fmt.Sprintf("* %s: %s\n", c.Kind, c.Name))
		if c.Superclass != "" {
			sb.WriteString(fmt.Sprintf("  * superclass: %s\n", c.Superclass))
		}
		for _, i := range c.Interfaces {
			sb.WriteString(fmt.Sprintf("  * interface: %s\n", i))
		}
		for _, m := range c.Methods {
			sb.WriteString(fmt.Sprintf("  * method: %s\n", m))
		}
		for _, f := range c.Fields {
			sb.WriteString(fmt.Sprintf("  * field: %s\n", f))
		}
	}
	return sb.String()
}
