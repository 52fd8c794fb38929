package main

import (
	"fmt"
	"os"
)

func run() int {
	os.Exit(3) // вне main разрешено
	return 0
}

func main() {
	fmt.Println("start")
	defer func() {
		os.Exit(2)
	}()
	os.Exit(run()) // want "direct os.Exit call in main.main"
}
