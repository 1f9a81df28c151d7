package oauth2client_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/AmmannChristian/go-reqauth/httpclient"
	"github.com/AmmannChristian/go-reqauth/oauth2client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024

var (
	bufListener = bufconn.Listen(bufSize)
	bufServer   = grpc.NewServer()
	bufOnce     sync.Once
)

func startBufServer() {
	bufOnce.Do(func() {
		go func() {
			_ = bufServer.Serve(bufListener)
		}()
	})
}

func dialBufConn(opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	startBufServer()

	dialOpts := []grpc.DialOption{
		grpc.WithContextDialer(func(c context.Context, _ string) (net.Conn, error) {
			return bufListener.DialContext(c)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}

	dialOpts = append(dialOpts, opts...)
	return grpc.NewClient("passthrough:///bufnet", dialOpts...)
}

// tokenEndpoint starts a local token endpoint that counts requests.
func tokenEndpoint(calls *int) *httptest.Server {
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*calls++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"example-token","token_type":"Bearer","expires_in":3600}`)
	}))
}

// Example demonstrates acquiring and reusing a client credentials token.
func Example() {
	var calls int
	server := tokenEndpoint(&calls)
	defer server.Close()

	grant, err := oauth2client.GrantSettings{
		GrantType:      "client_credentials",
		AccessTokenURL: server.URL + "/token",
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		Scope:          "openid profile",
	}.GrantConfig()
	if err != nil {
		log.Fatal(err)
	}

	cache, err := oauth2client.NewTokenCache(oauth2client.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}

	for range 2 {
		token, err := cache.GetOAuth2Token(context.Background(), grant, &httpclient.Config{})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
	}
	fmt.Printf("token requests: %d\n", calls)
	// Output:
	// example-token
	// example-token
	// token requests: 1
}

// ExampleGrantSettings_GrantConfig shows the fail-fast configuration check.
func ExampleGrantSettings_GrantConfig() {
	_, err := oauth2client.GrantSettings{GrantType: "client_credentials"}.GrantConfig()
	fmt.Println(err)

	_, err = oauth2client.GrantSettings{GrantType: "implicit", AccessTokenURL: "https://auth.example.com/token"}.GrantConfig()
	fmt.Println(err)
	// Output:
	// oauth2client: invalid configuration: missing required OAuth2 parameters: grantType or accessTokenUrl
	// oauth2client: unsupported grant type: "implicit"
}

// ExampleGetOAuth2Token demonstrates that endpoint failures yield an empty token.
func ExampleGetOAuth2Token() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	grant := &oauth2client.PasswordConfig{
		CommonConfig: oauth2client.CommonConfig{AccessTokenURL: server.URL},
		Username:     "alice",
		Password:     "wonderland",
	}

	token, err := oauth2client.GetOAuth2Token(context.Background(), grant, oauth2client.NewMemoryStore(), nil)
	fmt.Printf("token=%q err=%v\n", token, err)
	// Output: token="" err=<nil>
}

// ExampleTokenCache_UnaryClientInterceptor demonstrates using the gRPC interceptors.
func ExampleTokenCache_UnaryClientInterceptor() {
	cache, err := oauth2client.NewTokenCache(nil)
	if err != nil {
		log.Fatal(err)
	}

	grant := &oauth2client.ClientCredentialsConfig{CommonConfig: oauth2client.CommonConfig{
		AccessTokenURL: "https://auth.example.com/oauth/v2/token",
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
	}}

	conn, err := dialBufConn(
		grpc.WithUnaryInterceptor(cache.UnaryClientInterceptor(grant, nil)),
		grpc.WithStreamInterceptor(cache.StreamClientInterceptor(grant, nil)),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println("gRPC client configured with OAuth2 authentication")
	// Output: gRPC client configured with OAuth2 authentication
}

// ExampleTokenCache_Authorizer demonstrates attaching bearer tokens to HTTP requests.
func ExampleTokenCache_Authorizer() {
	var calls int
	tokenServer := tokenEndpoint(&calls)
	defer tokenServer.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get("Authorization"))
	}))
	defer api.Close()

	cache, err := oauth2client.NewTokenCache(nil)
	if err != nil {
		log.Fatal(err)
	}
	grant := &oauth2client.ClientCredentialsConfig{CommonConfig: oauth2client.CommonConfig{
		AccessTokenURL: tokenServer.URL,
		ClientID:       "client-id",
	}}

	client, err := httpclient.NewBuilder().
		WithAuthorizer(cache.Authorizer(grant, nil)).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	resp, err := client.Get(api.URL)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Println(string(body))
	// Output: Bearer example-token
}
