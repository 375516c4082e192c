package commands

import "tasktracker/storage"

func init() {
	Register(&Command{
		Name:        "/help",
		Description: "Show available commands",
		Hidden:      true,
		Handler: func(args string) (bool, error) {
			outln("Available commands:")
			for _, cmd := range List() {
				outf("  %-55s - %s\n", cmd.Usage(), cmd.Description)
			}
			outln("Statuses: " + storage.StatusList())
			return false, nil
		},
	})
}
