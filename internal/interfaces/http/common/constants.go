package common

const (
	// MaxJSONRequestBody limits JSON request bodies for record/session endpoints.
	MaxJSONRequestBody = 1 << 20
	// MultipartOverhead はファイル本体以外のフォーム領域として許容するバイト数。
	MultipartOverhead = 64 << 10
)
