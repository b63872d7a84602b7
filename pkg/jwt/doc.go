// Package jwt verifies access tokens issued by the hosted auth service.
//
// Tokens are HS256-signed with a shared secret. The subject claim is the
// application user ID and the email claim is used when creating payment
// provider customers. Middleware puts the verified Claims into the request
// context; handlers read them with ClaimsFromContext.
package jwt
