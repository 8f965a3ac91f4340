package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nanotts/nanotts/internal/config"
	"github.com/nanotts/nanotts/internal/voice"
)

var voicesCmd = &cobra.Command{
	Use:     "voices",
	Short:   "List the supported voices",
	Long:    paragraph(fmt.Sprintf("\n%s the voices nanotts knows about and whether their lingware is installed.", keyword("List"))),
	Example: paragraph("nanotts voices\nnanotts voices -l ~/pico/lang"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := readExplicitConfig(cmd); err != nil {
			return err
		}
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		dir, err := lingwareDir(cfg.Lingware)
		if err != nil {
			dir = ""
		}
		return renderVoices(cmd.OutOrStdout(), voice.All(), dir, cfg.Voice)
	},
}

func renderVoices(w io.Writer, entries []voice.Entry, dir, selected string) error {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Faint(true)).
		Headers("VOICE", "LANG", "COUNTRY", "LINGWARE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	def, _ := voice.Resolve(selected)
	for _, e := range entries {
		name := e.Name
		if e.Name == def.Name {
			name = keyword(name + " *")
		}
		status := faint("not found")
		if dir != "" && voice.Available(dir, e) {
			status = "installed"
		}
		t.Row(name, e.LangISO3, e.CountryISO3, status)
	}

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	if dir == "" {
		_, err := fmt.Fprintln(w, faint("No lingware directory found, use -l or lingware.dir."))
		return err
	}
	_, err := fmt.Fprintln(w, faint("Lingware: "+dir))
	return err
}
