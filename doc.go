// Package secureshare provides a Go client SDK for SecureShare, a
// zero-knowledge ephemeral content-sharing service.
//
// All encryption happens on-device: the backend stores only ciphertext,
// initialization vectors and one-way key hashes, and looks content up by
// a short access PIN. The content key travels out-of-band from sender to
// receiver (optionally sealed to the receiver's ML-KEM-768 public key)
// and is never sent to the server.
//
// Sender:
//
//	client, err := secureshare.New("https://api.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	share, err := client.Share(ctx, []byte("meet at noon"),
//	    secureshare.WithOneTime())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Give share.PIN and share.Key to the receiver out-of-band.
//
// Receiver:
//
//	grant, err := client.Access(ctx, pin)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := client.View(grant, key,
//	    secureshare.OnClosed(func(r secureshare.CloseReason) {
//	        fmt.Println("closed:", r)
//	    }))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plaintext, _ := session.Plaintext()
//
// The viewing session enforces expiry, one-time semantics, a
// suspicious-activity threshold, an inactivity watchdog and a
// connectivity grace window, and wipes all plaintext on termination.
package secureshare
