// hsgen validates contract documents and generates Go bindings for them.
package main

func main() {
	Execute()
}
