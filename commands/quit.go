package commands

func init() {
	Register(&Command{
		Name:        "/quit",
		Description: "Exit the task tracker",
		Hidden:      true,
		Handler: func(args string) (bool, error) {
			outln("Goodbye!")
			return true, nil
		},
	})

	// Alias
	Register(&Command{
		Name:        "/exit",
		Description: "Exit the task tracker",
		Hidden:      true,
		Handler: func(args string) (bool, error) {
			outln("Goodbye!")
			return true, nil
		},
	})
}
