/*
Package authapi is a thin client for the escrow backend's authentication
endpoints.

It knows the wire shapes of login, registration, token refresh, profile and
logout and nothing else: it keeps no state, stores no tokens and never retries.
Session lifecycle (persisting tokens, renewing them before expiry, logging out
on a rejected renewal) lives in package session, which drives this client.

	api := authapi.NewClient("https://escrow.example.com/api")

	tokens, err := api.Login(ctx, authapi.LoginRequest{
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	if err != nil {
		var apiErr *authapi.APIError
		if errors.As(err, &apiErr) {
			fmt.Println(apiErr.StatusCode, apiErr.Message)
		}
		return err
	}

	profile, err := api.Profile(ctx, tokens.AccessToken)

# Errors

Any non-2xx response is returned as *APIError. IsUnauthorized reports whether
an error is a 401, which is the only status the session layer treats as
"the token is no longer accepted".
*/
package authapi
