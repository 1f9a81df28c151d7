// Package edgegrid signs HTTP requests with Akamai EdgeGrid (EG1-HMAC-SHA256).
//
// The signature covers the method, scheme, host, path and query, an optional
// canonical header string, and a SHA-256 hash of the first MaxBodySize
// characters of the body. JSON bodies are re-serialized in canonical compact
// form before hashing so formatting does not change the signature.
//
// # Quick Start
//
//	signer, err := edgegrid.NewSigner(edgegrid.Identity{
//	    ClientToken:  "akab-client-token",
//	    AccessToken:  "akab-access-token",
//	    ClientSecret: "client-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := &http.Client{Transport: edgegrid.NewTransport(signer, nil)}
//
// Sign is the pure form: given fixed Material it always returns the same header.
package edgegrid
