package main

import "github.com/killallgit/resume-api/cmd"

// @title           Resume API
// @version         1.0.0
// @description     Video resume and watched-progress API
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/resume-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:3000
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
