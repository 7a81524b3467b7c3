package theme

// registerBuiltins installs the stock palettes.
func registerBuiltins() {
	register(Theme{
		Name:         "dark",
		Background:   "#1a1b26",
		Foreground:   "#c0caf5",
		Dim:          "#565f89",
		Accent:       "#7aa2f7",
		Border:       "#3b4261",
		BorderFocus:  "#7aa2f7",
		BorderActive: "#9ece6a",
		Title:        "#bb9af7",
		MenuBorder:   "#7aa2f7",
		MenuSelected: "#7aa2f7",
		MenuItem:     "#a9b1d6",
		StatusOK:     "#9ece6a",
		StatusWarn:   "#e0af68",
		StatusError:  "#f7768e",
		HelpKey:      "#7aa2f7",
		HelpDesc:     "#565f89",
	})

	register(Theme{
		Name:         "light",
		Background:   "#e1e2e7",
		Foreground:   "#3760bf",
		Dim:          "#848cb5",
		Accent:       "#2e7de9",
		Border:       "#a8aecb",
		BorderFocus:  "#2e7de9",
		BorderActive: "#587539",
		Title:        "#9854f1",
		MenuBorder:   "#2e7de9",
		MenuSelected: "#2e7de9",
		MenuItem:     "#6172b0",
		StatusOK:     "#587539",
		StatusWarn:   "#8c6c3e",
		StatusError:  "#f52a65",
		HelpKey:      "#2e7de9",
		HelpDesc:     "#848cb5",
	})

	register(Theme{
		Name:         "midnight",
		Background:   "#0f0f14",
		Foreground:   "#8a8a96",
		Dim:          "#44444e",
		Accent:       "#5c5c8a",
		Border:       "#26262e",
		BorderFocus:  "#5c5c8a",
		BorderActive: "#6a8a5c",
		Title:        "#6e6e8a",
		MenuBorder:   "#5c5c8a",
		MenuSelected: "#8a8aa6",
		MenuItem:     "#55555f",
		StatusOK:     "#5d7a52",
		StatusWarn:   "#8a7a4e",
		StatusError:  "#8a4e5c",
		HelpKey:      "#5c5c8a",
		HelpDesc:     "#44444e",
	})
}
