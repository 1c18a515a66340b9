package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs

// @title SSO Central API
// @version 0.1
// @description Console page, echo socket, token endpoints and the probe API of the SSO central test server.
// @contact.name SSO Probe Maintainers
// @contact.url https://github.com/raysh454/ssoprobe
// @BasePath /
