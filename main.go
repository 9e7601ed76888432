/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/membersonly/forum/cmd"

func main() {
	cmd.Execute()
}
