/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/moamenhredeen/reqcheck/cmd"

func main() {
	cmd.Execute()
}
