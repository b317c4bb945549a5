// Package openrouter provides an OpenRouter backend for llm-code.
//
// OpenRouter fronts many models behind one OpenAI-like API, so the history is
// sent with its roles unchanged. The optional "site_url" and "app_name"
// extras are forwarded as the attribution headers OpenRouter expects.
package openrouter
