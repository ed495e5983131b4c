package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ciphera/internal/domain"
	"ciphera/internal/identity"
	"ciphera/internal/session"
	"ciphera/internal/store"
)

// demoCmd runs a self-contained X3DH handshake and Double Ratchet exchange
// between two in-process identities: a fresh PreKeyMessage handshake, a few
// rounds of ping-pong, one out-of-order delivery, and a save/restore of the
// responder's session through the sqlite-backed, passphrase-sealed store.
func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run an in-process X3DH handshake and ratcheted conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

func runDemo() error {
	alice, err := identity.Generate(nextRegistrationID(), 3, 1)
	if err != nil {
		return fmt.Errorf("generating alice's identity: %w", err)
	}
	bob, err := identity.Generate(nextRegistrationID(), 3, 1)
	if err != nil {
		return fmt.Errorf("generating bob's identity: %w", err)
	}

	bundle, err := identity.Bundle(bob)
	if err != nil {
		return fmt.Errorf("assembling bob's bundle: %w", err)
	}

	aliceSession, err := session.CreateAsInitiator(alice, bundle, opts)
	if err != nil {
		return fmt.Errorf("alice: create as initiator: %w", err)
	}

	env, err := aliceSession.Encrypt([]byte("hello bob, it's alice"))
	if err != nil {
		return fmt.Errorf("alice: encrypt first message: %w", err)
	}
	if !env.IsPreKeyMessage() {
		return fmt.Errorf("expected alice's first message to carry a PreKeyMessage")
	}
	fmt.Println("alice -> bob: PreKeyMessage(hello bob, it's alice)")

	bobSession, err := session.CreateAsResponder(&bob, *env.PreKey, opts)
	if err != nil {
		return fmt.Errorf("bob: create as responder: %w", err)
	}
	plaintext, err := bobSession.Decrypt(env.PreKey.SignedMessage)
	if err != nil {
		return fmt.Errorf("bob: decrypt first message: %w", err)
	}
	fmt.Printf("bob received: %q\n", plaintext)

	for i := 0; i < 2; i++ {
		reply, err := bobSession.Encrypt([]byte("hi alice, ping-pong round"))
		if err != nil {
			return fmt.Errorf("bob: encrypt: %w", err)
		}
		plaintext, err = aliceSession.Decrypt(*reply.Signed)
		if err != nil {
			return fmt.Errorf("alice: decrypt: %w", err)
		}
		fmt.Printf("alice received: %q\n", plaintext)

		ping, err := aliceSession.Encrypt([]byte("back at you, bob"))
		if err != nil {
			return fmt.Errorf("alice: encrypt: %w", err)
		}
		plaintext, err = bobSession.Decrypt(*ping.Signed)
		if err != nil {
			return fmt.Errorf("bob: decrypt: %w", err)
		}
		fmt.Printf("bob received: %q\n", plaintext)
	}

	var envs []domain.Envelope
	for _, m := range []string{"out of order one", "out of order two", "out of order three"} {
		e, err := bobSession.Encrypt([]byte(m))
		if err != nil {
			return fmt.Errorf("bob: encrypt %q: %w", m, err)
		}
		envs = append(envs, e)
	}
	for _, idx := range []int{2, 0, 1} {
		plaintext, err = aliceSession.Decrypt(*envs[idx].Signed)
		if err != nil {
			return fmt.Errorf("alice: decrypt out-of-order message %d: %w", idx, err)
		}
		fmt.Printf("alice received (out of order): %q\n", plaintext)
	}
	stats := aliceSession.Stats()
	fmt.Printf("alice's skipped-key cache after reordering: %d entries across %d steps\n", stats.TotalSkippedKeys, stats.TrackedSteps)

	aliceRemote, err := identity.Bundle(alice)
	if err != nil {
		return fmt.Errorf("assembling alice's remote identity: %w", err)
	}
	if err := demoPersistence(bobSession, aliceSession, &bob, aliceRemote.Identity); err != nil {
		return err
	}
	return nil
}

// demoPersistence saves bobSession through the sealed sqlite store, restores
// it, and proves the restored session can still decrypt a message alice
// sends after the save. bobIdentity and aliceRemote are handed back in since
// Session itself does not expose the identities it was built from.
func demoPersistence(bobSession, aliceSession *session.Session, bobIdentity *domain.Identity, aliceRemote domain.RemoteIdentity) error {
	db, err := store.OpenSQLiteStore(sessionDBPath())
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer db.Close()

	sealed := store.NewSealedStore(db, passphrase)

	blob, err := bobSession.Serialize()
	if err != nil {
		return fmt.Errorf("serializing bob's session: %w", err)
	}
	if err := sealed.Save("alice", blob); err != nil {
		return fmt.Errorf("saving bob's session: %w", err)
	}
	fmt.Println("bob's session saved to", sessionDBPath())

	loaded, ok, err := sealed.Load("alice")
	if err != nil {
		return fmt.Errorf("loading bob's session: %w", err)
	}
	if !ok {
		return fmt.Errorf("expected a saved session for alice, found none")
	}

	bobRestored, err := session.Restore(loaded, bobIdentity, aliceRemote, opts)
	if err != nil {
		return fmt.Errorf("restoring bob's session: %w", err)
	}

	env, err := aliceSession.Encrypt([]byte("still here after your restart"))
	if err != nil {
		return fmt.Errorf("alice: encrypt post-restore message: %w", err)
	}
	plaintext, err := bobRestored.Decrypt(*env.Signed)
	if err != nil {
		return fmt.Errorf("restored bob session: decrypt: %w", err)
	}
	fmt.Printf("restored bob session received: %q\n", plaintext)
	return nil
}
