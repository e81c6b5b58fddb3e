package driven

import "context"

// FetchedPage is the body of a retrieved web page.
type FetchedPage struct {
	// URL is the final URL after redirects.
	URL string

	// ContentType is the response media type, e.g. "text/html".
	ContentType string

	// Body is the raw response body.
	Body []byte
}

// Fetcher retrieves web pages. Failures wrap domain.ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedPage, error)
}
