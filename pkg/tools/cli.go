package tools

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ConfirmOperation asks the operator a yes/no question on the terminal.
// Anything but an explicit yes declines.
func ConfirmOperation(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", question)
	text, _ := reader.ReadString('\n')
	text = strings.ToLower(strings.TrimSpace(text))
	return text == "y" || text == "yes"
}
