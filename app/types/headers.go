package types

// Token carriers shared by the HTTP headers, cookies and gRPC metadata keys.
const (
	AccessTokenHeader  = "accesstoken"
	RefreshTokenHeader = "refreshtoken"
)
