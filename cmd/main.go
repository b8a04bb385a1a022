// cmd/main.go
package main

import (
	"go-campus-api/app"
)

func main() {
	app.Run()
}
