package application

// Module wires a feature area into the application: services, controllers
// and event subscribers.
type Module interface {
	Name() string
	Register(app Application) error
}

func Load(app Application, modules ...Module) error {
	for _, m := range modules {
		if err := m.Register(app); err != nil {
			return err
		}
	}
	return nil
}
