package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/fixtures"
	"github.com/nitpy-cse/assetreg/internal/model"
	"github.com/nitpy-cse/assetreg/internal/store"
)

const (
	defaultHODEmail = "hod@localhost"
	defaultHODName  = "Head of Department"
)

// bootstrapHOD creates a HOD account when the register has no active users.
// It returns the generated password, or "" when nothing was created.
func bootstrapHOD(ctx context.Context, database *db.DB, email string) (string, error) {
	n, err := store.CountUsers(ctx, database)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(ctx, database, defaultHODName, email, string(hash), model.RoleHOD); err != nil {
		return "", fmt.Errorf("creating HOD account: %w", err)
	}
	return password, nil
}

// seedAssets inserts the sample assets when the assets table is empty and
// returns how many were inserted.
func seedAssets(ctx context.Context, database *db.DB) (int, error) {
	n, err := store.CountAssets(ctx, database)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	samples := fixtures.Assets()
	for i := range samples {
		if _, err := store.CreateAsset(ctx, database, &samples[i]); err != nil {
			return i, fmt.Errorf("seeding assets: %w", err)
		}
	}
	return len(samples), nil
}

// printInitResult prints the generated HOD credentials to stdout.
func printInitResult(email, password string) {
	fmt.Println("HOD account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
