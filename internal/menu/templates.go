package menu

// Template names, kept from the packaged menu assets.
const (
	RootMenuName        = "Menu_Root"
	MainMenuName        = "Menu_Main"
	BasicParametersName = "Parameters_Basic"
)

// BasicParameters returns a fresh copy of the global parameter list every
// generated menu starts from.
func BasicParameters() *Parameters {
	return &Parameters{
		Name: BasicParametersName,
		List: []Parameter{
			{Name: GlobalIntensityParam, Type: Float, Default: 1, Saved: true},
			{Name: GlobalShowParam, Type: Bool, Default: 0, Saved: true},
		},
	}
}

// MainTemplate returns a fresh main page with the global controls.
func MainTemplate() *Menu {
	return &Menu{
		Name: MainMenuName,
		Controls: []*Control{
			{Name: "Show Nodes", Type: Toggle, Parameter: GlobalShowParam, Value: 1},
			{Name: "Intensity", Type: RadialPuppet, SubParameters: []string{GlobalIntensityParam}},
		},
	}
}

// RootTemplate returns a fresh root menu whose single submenu control is
// left unwired.
func RootTemplate() *Menu {
	return &Menu{
		Name: RootMenuName,
		Controls: []*Control{
			{Name: "Haptics", Type: SubMenu},
		},
	}
}

// Templates copies the three template assets and wires them together:
// root → main, both bound to params.
func Templates() (root, main *Menu, params *Parameters) {
	root, main, params = RootTemplate(), MainTemplate(), BasicParameters()
	root.Parameters = params
	main.Parameters = params
	root.Controls[0].SubMenu = main
	return root, main, params
}
