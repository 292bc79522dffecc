// Package deps checks for the external binaries kartvid shells out to.
package deps
