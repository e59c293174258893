// Package main is the entry point for cmsinit, which makes sure the
// Translation content type exists and is published in a content-management
// space.
//
// @title          cmsinit API
// @version        0.1.0
// @description    Bootstraps the Translation content type in a content-management space.
// @host           localhost:8081
// @BasePath       /
// @schemes        http
package main

func main() {
	Execute()
}
