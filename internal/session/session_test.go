package session_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"ciphera/internal/config"
	"ciphera/internal/domain"
	"ciphera/internal/identity"
	"ciphera/internal/protoerr"
	"ciphera/internal/session"
)

func testOpts() config.Options {
	opts := config.Default()
	opts.SkippedKeyTTL = time.Hour
	return opts
}

// establish builds a connected initiator/responder session pair the way an
// application would: alice initiates against bob's published bundle, sends
// a first message wrapped in a PreKeyMessage, and bob bootstraps from it.
func establish(t *testing.T) (*session.Session, *session.Session) {
	t.Helper()

	alice, err := identity.Generate(1, 1, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bob, err := identity.Generate(2, 1, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}

	bundle, err := identity.Bundle(bob)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	aliceSession, err := session.CreateAsInitiator(alice, bundle, testOpts())
	if err != nil {
		t.Fatalf("CreateAsInitiator: %v", err)
	}

	env, err := aliceSession.Encrypt([]byte("hello bob"))
	if err != nil {
		t.Fatalf("Encrypt (first message): %v", err)
	}
	if !env.IsPreKeyMessage() {
		t.Fatal("expected the first outbound message to be a PreKeyMessage")
	}

	bobSession, err := session.CreateAsResponder(&bob, *env.PreKey, testOpts())
	if err != nil {
		t.Fatalf("CreateAsResponder: %v", err)
	}

	plaintext, err := bobSession.Decrypt(env.PreKey.SignedMessage)
	if err != nil {
		t.Fatalf("Decrypt (first message): %v", err)
	}
	if string(plaintext) != "hello bob" {
		t.Fatalf("got %q, want %q", plaintext, "hello bob")
	}

	return aliceSession, bobSession
}

func TestSession_FirstMessageIsPreKeyMessage(t *testing.T) {
	establish(t)
}

func TestSession_SubsequentMessagesAreBareSigned(t *testing.T) {
	alice, bob := establish(t)

	env, err := bob.Encrypt([]byte("hey alice"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if env.IsPreKeyMessage() {
		t.Fatal("expected a bare MessageSigned, got a PreKeyMessage")
	}

	plaintext, err := alice.Decrypt(*env.Signed)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(plaintext) != "hey alice" {
		t.Fatalf("got %q, want %q", plaintext, "hey alice")
	}

	env2, err := alice.Encrypt([]byte("how's it going"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if env2.IsPreKeyMessage() {
		t.Fatal("expected a bare MessageSigned on alice's second message too")
	}
}

func TestSession_OutOfOrderDelivery(t *testing.T) {
	alice, bob := establish(t)

	var envs []domain.Envelope
	for _, m := range []string{"one", "two", "three"} {
		env, err := bob.Encrypt([]byte(m))
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", m, err)
		}
		envs = append(envs, env)
	}

	// Deliver out of order: three, one, two.
	order := []int{2, 0, 1}
	want := []string{"three", "one", "two"}
	for i, idx := range order {
		plaintext, err := alice.Decrypt(*envs[idx].Signed)
		if err != nil {
			t.Fatalf("Decrypt(%d): %v", idx, err)
		}
		if string(plaintext) != want[i] {
			t.Fatalf("Decrypt(%d): got %q, want %q", idx, plaintext, want[i])
		}
	}

	stats := alice.Stats()
	if stats.TotalSkippedKeys != 0 {
		t.Fatalf("expected all skipped keys consumed, got %d remaining", stats.TotalSkippedKeys)
	}
}

func TestSession_DuplicateMessageRejected(t *testing.T) {
	alice, bob := establish(t)

	env, err := bob.Encrypt([]byte("once"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := alice.Decrypt(*env.Signed); err != nil {
		t.Fatalf("Decrypt (first delivery): %v", err)
	}
	if _, err := alice.Decrypt(*env.Signed); err == nil {
		t.Fatal("expected an error re-decrypting the same message")
	}
}

func TestSession_RatchetRotatesAcrossDirections(t *testing.T) {
	alice, bob := establish(t)

	for i := 0; i < 3; i++ {
		env, err := bob.Encrypt([]byte("ping"))
		if err != nil {
			t.Fatalf("Encrypt (bob): %v", err)
		}
		if _, err := alice.Decrypt(*env.Signed); err != nil {
			t.Fatalf("Decrypt (alice): %v", err)
		}

		env2, err := alice.Encrypt([]byte("pong"))
		if err != nil {
			t.Fatalf("Encrypt (alice): %v", err)
		}
		if _, err := bob.Decrypt(*env2.Signed); err != nil {
			t.Fatalf("Decrypt (bob): %v", err)
		}
	}
}

func TestSession_BadSenderIdentityRejected(t *testing.T) {
	alice, bob := establish(t)

	env, err := bob.Encrypt([]byte("hi"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tampered := *env.Signed
	tampered.SenderKey[0] ^= 0xFF

	if _, err := alice.Decrypt(tampered); err == nil {
		t.Fatal("expected an error decrypting a message with a forged sender key")
	}
}

func TestSession_ExpiredSkippedKeyRejected(t *testing.T) {
	opts := testOpts()
	opts.SkippedKeyTTL = time.Millisecond

	alice, err := identity.Generate(31, 1, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bob, err := identity.Generate(32, 1, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}
	bundle, err := identity.Bundle(bob)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	aliceSession, err := session.CreateAsInitiator(alice, bundle, opts)
	if err != nil {
		t.Fatalf("CreateAsInitiator: %v", err)
	}
	env, err := aliceSession.Encrypt([]byte("hello bob"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	bobSession, err := session.CreateAsResponder(&bob, *env.PreKey, opts)
	if err != nil {
		t.Fatalf("CreateAsResponder: %v", err)
	}
	if _, err := bobSession.Decrypt(env.PreKey.SignedMessage); err != nil {
		t.Fatalf("Decrypt (first message): %v", err)
	}

	var envs []domain.Envelope
	for _, m := range []string{"one", "two"} {
		e, err := bobSession.Encrypt([]byte(m))
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", m, err)
		}
		envs = append(envs, e)
	}

	// Deliver "two" first: "one"'s key is cached as skipped with a 1ms
	// TTL. By the time "one" actually arrives, that cached key has aged
	// out and must be treated as gone, not silently honored.
	if _, err := aliceSession.Decrypt(*envs[1].Signed); err != nil {
		t.Fatalf("Decrypt (two): %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := aliceSession.Decrypt(*envs[0].Signed); err == nil {
		t.Fatal("expected decrypting an expired skipped message to fail")
	}
}

func TestSession_TamperedCiphertextLeavesChainUnchanged(t *testing.T) {
	alice, bob := establish(t)

	env, err := bob.Encrypt([]byte("hi alice"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tampered := *env.Signed
	tampered.Message.CipherText = append([]byte(nil), tampered.Message.CipherText...)
	tampered.Message.CipherText[0] ^= 0xFF

	if _, err := alice.Decrypt(tampered); !errors.Is(err, protoerr.ErrDecryptFailed) {
		t.Fatalf("Decrypt (tampered ciphertext): got err %v, want ErrDecryptFailed", err)
	}

	// The failed decrypt above must not have advanced alice's receiving
	// chain: the original, untampered message should still decrypt.
	plaintext, err := alice.Decrypt(*env.Signed)
	if err != nil {
		t.Fatalf("Decrypt (original message, after failed tamper attempt): %v", err)
	}
	if string(plaintext) != "hi alice" {
		t.Fatalf("got %q, want %q", plaintext, "hi alice")
	}
}

func TestSession_SerializeRestoreRoundTrip(t *testing.T) {
	aliceIdentity, err := identity.Generate(10, 1, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bobIdentity, err := identity.Generate(20, 1, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}

	bundle, err := identity.Bundle(bobIdentity)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	aliceSession, err := session.CreateAsInitiator(aliceIdentity, bundle, testOpts())
	if err != nil {
		t.Fatalf("CreateAsInitiator: %v", err)
	}

	env, err := aliceSession.Encrypt([]byte("first"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	bobSession, err := session.CreateAsResponder(&bobIdentity, *env.PreKey, testOpts())
	if err != nil {
		t.Fatalf("CreateAsResponder: %v", err)
	}
	if _, err := bobSession.Decrypt(env.PreKey.SignedMessage); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	blob, err := bobSession.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	aliceRemote, err := identity.Bundle(aliceIdentity)
	if err != nil {
		t.Fatalf("Bundle (alice): %v", err)
	}

	restored, err := session.Restore(blob, &bobIdentity, aliceRemote.Identity, testOpts())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	env2, err := aliceSession.Encrypt([]byte("second"))
	if err != nil {
		t.Fatalf("Encrypt (second): %v", err)
	}
	plaintext, err := restored.Decrypt(*env2.Signed)
	if err != nil {
		t.Fatalf("Decrypt (restored): %v", err)
	}
	if !bytes.Equal(plaintext, []byte("second")) {
		t.Fatalf("got %q, want %q", plaintext, "second")
	}
}

func TestSession_OnUpdateFiresOnEncryptAndDecrypt(t *testing.T) {
	aliceIdentity, err := identity.Generate(1, 1, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bobIdentity, err := identity.Generate(2, 1, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}
	bundle, err := identity.Bundle(bobIdentity)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	updates := 0
	aliceSession, err := session.CreateAsInitiator(aliceIdentity, bundle, testOpts(), session.WithOnUpdate(func() { updates++ }))
	if err != nil {
		t.Fatalf("CreateAsInitiator: %v", err)
	}

	env, err := aliceSession.Encrypt([]byte("hi"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if updates != 1 {
		t.Fatalf("got %d updates after one Encrypt, want 1", updates)
	}

	bobUpdates := 0
	bobSession, err := session.CreateAsResponder(&bobIdentity, *env.PreKey, testOpts(), session.WithOnUpdate(func() { bobUpdates++ }))
	if err != nil {
		t.Fatalf("CreateAsResponder: %v", err)
	}
	if _, err := bobSession.Decrypt(env.PreKey.SignedMessage); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if bobUpdates != 1 {
		t.Fatalf("got %d updates after one Decrypt, want 1", bobUpdates)
	}
}
