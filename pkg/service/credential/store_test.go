package credential_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/newsverify/adkbridge/pkg/model"
	"github.com/newsverify/adkbridge/pkg/service/credential"
)

func TestStoreEmpty(t *testing.T) {
	store := credential.NewStore()

	_, ok := store.Current()
	gt.False(t, ok)

	_, err := store.Token()
	gt.True(t, errors.Is(err, credential.ErrNoCredential))
}

func TestStoreSetAndCurrent(t *testing.T) {
	store := credential.NewStore()
	expiry := time.Now().Add(time.Hour)

	store.Set(model.Credential{Token: "tok-1", Expiry: expiry})

	cred, ok := store.Current()
	gt.True(t, ok)
	gt.Equal(t, cred.Token, "tok-1")
	gt.Equal(t, cred.Expiry, expiry)

	tok, err := store.Token()
	gt.NoError(t, err)
	gt.Equal(t, tok.AccessToken, "tok-1")
	gt.Equal(t, tok.TokenType, "Bearer")
	gt.Equal(t, tok.Expiry, expiry)
}

// Token and expiry must always be read as the pair that was written
// together, even while a writer is replacing them.
func TestStoreNoTornReads(t *testing.T) {
	store := credential.NewStore()
	store.Set(model.Credential{Token: "0", Expiry: time.Unix(0, 0)})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 5000; i++ {
			store.Set(model.Credential{
				Token:  strconv.Itoa(i),
				Expiry: time.Unix(int64(i), 0),
			})
		}
	}()

	for {
		cred, ok := store.Current()
		gt.True(t, ok)

		n, err := strconv.Atoi(cred.Token)
		gt.NoError(t, err)
		gt.Equal(t, cred.Expiry.Unix(), int64(n))

		select {
		case <-done:
			return
		default:
		}
	}
}
