package main

// General API documentation for swaggo. `go generate ./cmd/healthrelay` rewrites docs/docs.go.
//
// @title           healthrelay API
// @version         1.0
// @description     Relay between the community health dashboard and the ML prediction service.
//
// @contact.name   healthrelay maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

//go:generate swag init --dir ../.. --generalInfo cmd/healthrelay/docs.go --output ../../docs --outputTypes go
