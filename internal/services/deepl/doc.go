// Package deepl wraps the DeepL text translation endpoint.
//
// The client posts {"text":[...],"target_lang":...} with a DeepL-Auth-Key
// header and retries rate limits (429) and server errors with exponential
// backoff, honouring Retry-After when present. Authentication failures (403)
// and exhausted quota (456) are returned immediately and marked as
// configuration errors so the caller can tell the user to fix their key.
package deepl
