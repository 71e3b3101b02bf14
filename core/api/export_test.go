package api

type (
	ResolveResponse = resolveResponse
	TLDsResponse    = tldsResponse
	StatusResponse  = statusResponse
)
