// Package models lists the chat models an OpenAI compatible provider
// offers, so users can pick one for translation.
package models
