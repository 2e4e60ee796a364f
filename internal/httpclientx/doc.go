// Package httpclientx contains extensions to more easily invoke HTTP APIs.
package httpclientx
