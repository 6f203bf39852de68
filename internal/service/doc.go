// Package service contains the business logic of Tablefolk: accounts and
// authentication, friend relationships, discussions, game sessions, shops
// and space renters, notifications and geocoding. Services depend on
// repository interfaces declared in this package and return sentinel
// errors from errors.go, which handlers map to problem responses.
package service
