package cli

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"
)

// ColorSchemeFunc is fang's default scheme with charmtone accents.
func ColorSchemeFunc(c lipgloss.LightDarkFunc) fang.ColorScheme {
	cs := fang.DefaultColorScheme(c)

	cs.Title = charmtone.Guac
	cs.Program = c(charmtone.Oyster, charmtone.Julep)
	cs.Command = c(charmtone.Oyster, charmtone.Julep)
	cs.Flag = c(charmtone.Charcoal, charmtone.Malibu)
	cs.FlagDefault = c(charmtone.Squid, charmtone.Smoke)
	cs.Codeblock = c(charmtone.Salt, lipgloss.Color("#2F2E36"))
	cs.ErrorHeader = [2]color.Color{charmtone.Butter, charmtone.Cherry}

	return cs
}
