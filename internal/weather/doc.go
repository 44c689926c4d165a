// Package weather fetches a short daily forecast from tomorrow.io.
package weather
