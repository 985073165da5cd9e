package util

import "github.com/pterm/pterm"

func Contains(list []string, str string) bool {
	for _, v := range list {
		if v == str {
			return true
		}
	}
	return false
}

// Fatal prints err and exits the process with status 1.
func Fatal(err error) {
	if err != nil {
		pterm.Fatal.Println(err)
	}
}
