/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
// @title           Approval Sys API
// @version         1.0
// @description     Project approval workflow API server
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
package main

import "github.com/a11enyan97/enterprise-approval-sys/cmd"

func main() {
	cmd.Execute()
}
