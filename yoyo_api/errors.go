package yoyo_api

// HTTPError represents a transport-level failure talking to yoyochinese.com.
type HTTPError string

func (e HTTPError) Error() string {
	return "http request failed: " + string(e)
}

// APIError represents a non-success response from the YoyoChinese API.
type APIError string

func (e APIError) Error() string {
	return "yoyochinese api error: " + string(e)
}
