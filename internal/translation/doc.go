// Package translation backfills translated question fields on generated
// booklets. Chat completions come from DeepSeek or OpenAI (through the
// OpenAI wire protocol) or from Gemini. Calls are paced and retried behind
// a circuit breaker, and identical questions are only translated once.
package translation
