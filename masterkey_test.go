package secureshare_test

import (
	"errors"
	"testing"

	secureshare "github.com/secureshare/client-go"
	"github.com/secureshare/client-go/sharetest"
)

func TestClient_MasterPassphrase(t *testing.T) {
	server := sharetest.NewServer()
	defer server.Close()
	client := newTestClient(t, server)

	if _, err := client.VerifyMasterPassphrase("anything"); !errors.Is(err, secureshare.ErrMasterKeyNotSet) {
		t.Fatalf("VerifyMasterPassphrase() before enrollment error = %v, want ErrMasterKeyNotSet", err)
	}

	if err := client.SetMasterPassphrase("correct horse battery staple"); err != nil {
		t.Fatalf("SetMasterPassphrase() error = %v", err)
	}

	ok, err := client.VerifyMasterPassphrase("correct horse battery staple")
	if err != nil {
		t.Fatalf("VerifyMasterPassphrase() error = %v", err)
	}
	if !ok {
		t.Error("correct passphrase rejected")
	}

	ok, err = client.VerifyMasterPassphrase("incorrect horse")
	if err != nil {
		t.Fatalf("VerifyMasterPassphrase() error = %v", err)
	}
	if ok {
		t.Error("wrong passphrase accepted")
	}
}

func TestClient_MasterPassphrase_Replace(t *testing.T) {
	server := sharetest.NewServer()
	defer server.Close()
	client := newTestClient(t, server)

	if err := client.SetMasterPassphrase("first"); err != nil {
		t.Fatal(err)
	}
	if err := client.SetMasterPassphrase("second"); err != nil {
		t.Fatal(err)
	}

	if ok, _ := client.VerifyMasterPassphrase("first"); ok {
		t.Error("replaced passphrase still accepted")
	}
	if ok, _ := client.VerifyMasterPassphrase("second"); !ok {
		t.Error("new passphrase rejected")
	}
}

func TestClient_MasterPassphrase_SurvivesRestart(t *testing.T) {
	server := sharetest.NewServer()
	defer server.Close()

	dir := t.TempDir()
	first, err := secureshare.New(server.URL, secureshare.WithStateDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if err := first.SetMasterPassphrase("persisted"); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := secureshare.New(server.URL, secureshare.WithStateDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	ok, err := second.VerifyMasterPassphrase("persisted")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("passphrase did not survive a restart")
	}
}

func TestClient_ClearMasterPassphrase(t *testing.T) {
	server := sharetest.NewServer()
	defer server.Close()
	client := newTestClient(t, server)

	if err := client.SetMasterPassphrase("temporary"); err != nil {
		t.Fatal(err)
	}
	if err := client.ClearMasterPassphrase(); err != nil {
		t.Fatalf("ClearMasterPassphrase() error = %v", err)
	}

	if _, err := client.VerifyMasterPassphrase("temporary"); !errors.Is(err, secureshare.ErrMasterKeyNotSet) {
		t.Errorf("VerifyMasterPassphrase() after clear error = %v, want ErrMasterKeyNotSet", err)
	}
}

func TestClient_SetMasterPassphrase_Empty(t *testing.T) {
	server := sharetest.NewServer()
	defer server.Close()
	client := newTestClient(t, server)

	if err := client.SetMasterPassphrase(""); !errors.Is(err, secureshare.ErrKeyDerivation) {
		t.Errorf("SetMasterPassphrase(\"\") error = %v, want ErrKeyDerivation", err)
	}
}
