package main

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/gogpu/mandelray"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

func palettesCmd(g *globals) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "palettes",
		Short: "Show the available palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := g.cfg.PaletteSet()
			if err != nil {
				return err
			}
			selected := set.Selected()
			for _, p := range set.Palettes() {
				marker := "  "
				if p == selected {
					marker = nameStyle.Render("> ")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s\n  %s\n",
					marker, titleStyle.Render(p.Name()),
					dimStyle.Render(fmt.Sprintf("(%d colors, interior %s)", p.Len(), p.Interior())),
					swatch(p, width))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 64, "Swatch width in cells")
	return cmd
}

// swatch samples p evenly into width terminal cells, ending with the
// interior color.
func swatch(p *mandelray.Palette, width int) string {
	width = max(width, 2)
	var b strings.Builder
	for i := range width - 1 {
		c := p.Color(i * p.Len() / (width - 1))
		b.WriteString(lipgloss.NewStyle().Background(c).Render(" "))
	}
	b.WriteString(lipgloss.NewStyle().Background(p.Interior()).Render(" "))
	return b.String()
}

func regionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the named regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			regions := mandelray.Landmarks()
			nameWidth := 0
			for _, r := range regions {
				nameWidth = max(nameWidth, lipgloss.Width(r.Name))
			}
			col := nameStyle.Width(nameWidth + 2)
			for _, r := range regions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n%s%s\n",
					col.Render(r.Name), r.Description,
					strings.Repeat(" ", nameWidth+2), dimStyle.Render(r.Viewport.String()))
			}
			return nil
		},
	}
}
