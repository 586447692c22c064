// Command askandsign runs the SQL assistant and the speech-to-sign translator.
package main

import "github.com/ketoprak/askandsign/internal/cli"

func main() {
	cli.Execute()
}
