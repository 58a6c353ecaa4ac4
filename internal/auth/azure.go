package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// DatabaseScope is the OAuth scope for Azure Database for PostgreSQL and
// MySQL flexible servers. Azure AD issues database access tokens against
// this resource.
const DatabaseScope = "https://ossrdbms-aad.database.windows.net/.default"

// AzureCredential obtains tokens through the local Azure CLI (`az`). The
// user must already be logged in; we never prompt.
type AzureCredential struct {
	cred  *azidentity.AzureCLICredential
	scope string
}

func NewAzureCredential() (*AzureCredential, error) {
	cred, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialUnavailable, err)
	}
	return &AzureCredential{cred: cred, scope: DatabaseScope}, nil
}

func (a *AzureCredential) GetToken(ctx context.Context) (string, time.Time, error) {
	tok, err := a.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{a.scope}})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrCredentialUnavailable, err)
	}
	return tok.Token, tok.ExpiresOn, nil
}

func (a *AzureCredential) String() string {
	return fmt.Sprintf("AzureCLICredential(scope=%s)", a.scope)
}
