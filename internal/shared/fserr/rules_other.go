//go:build !windows

package fserr

var platformRules []rule
