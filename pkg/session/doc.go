/*
Package session keeps a user signed in to the escrow backend.

A Manager owns the whole lifecycle of a session:

  - On Start it loads persisted credentials, checks the access token's embedded
    expiry and either fetches the profile straight away or renews the token
    first.
  - Login and Register exchange credentials for a token pair, persist it and
    fetch the profile. If the profile cannot be fetched the tokens are removed
    again, so a stored token pair always belongs to a known user.
  - A Scheduler arms one timer per access token that renews it shortly before
    it expires.
  - Renewals are single-flight: however many goroutines discover an expired
    token at once, one refresh request reaches the backend.
  - A rejected renewal ends the session (HandleAuthFailure). There is no retry.

Typical wiring:

	store, _ := sqlite.Open(path)
	mgr := session.New(authapi.NewClient(baseURL), store,
		session.WithLogger(logger),
	)
	defer mgr.Close()

	if err := mgr.Start(ctx); err != nil {
		return err
	}
	if !mgr.IsAuthenticated() {
		err = mgr.Login(ctx, authapi.LoginRequest{Email: email, Password: pw})
	}

	// The HTTP layer gets the manager as both token source and auth hooks.
	api := apiclient.New(baseURL, mgr, mgr)

# Token expiry is a hint

Expiry is read from the token without verifying its signature (see package
tokenx). It only decides when to renew. The backend stays the authority on
whether a token is accepted, which is why the HTTP layer still handles 401
responses by refreshing and replaying once.

# Concurrent renewals

With the default JoinInFlight policy, callers that arrive while a renewal is
running wait for it and get its result. RejectConcurrent instead returns false
to them immediately; a false from RefreshToken then means "not refreshed by
this call", not "the session is dead".
*/
package session
