package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the access token ("Bearer <token>").
const AuthorizationHeaderName = "authorization"

// BearerPrefix is the optional scheme prefix in front of a token.
const BearerPrefix = "Bearer "
