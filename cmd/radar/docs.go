package main

//go:generate swag init -g cmd/radar/main.go -o docs

// @title           RoleRadar API
// @version         1.0
// @description     Job-market signal discovery service
// @host            localhost:8080
// @BasePath        /
// @schemes         http
