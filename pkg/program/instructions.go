package program

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"solmarket/pkg/core"
)

// Method discriminators for the four lifecycle instructions.
var (
	createListingDisc = methodDiscriminator("create_listing")
	askDisc           = methodDiscriminator("ask")
	buyDisc           = methodDiscriminator("buy")
	closeListingDisc  = methodDiscriminator("close_listing")
)

func encodeArgs(disc [8]byte, args ...any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	enc := bin.NewBorshEncoder(buf)
	for _, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, fmt.Errorf("encode instruction arg %T: %w", arg, err)
		}
	}
	return buf.Bytes(), nil
}

// CreateListingParams holds the derived addresses and arguments for opening
// a listing.
type CreateListingParams struct {
	Market       solana.PublicKey
	Seller       solana.PublicKey
	Listing      solana.PublicKey
	NFTVault     solana.PublicKey
	NFTAccount   solana.PublicKey
	NFTMint      solana.PublicKey
	Ask          uint64
	ListingBump  uint8
	NFTVaultBump uint8
}

// CreateListing builds the instruction that escrows one unit of the mint
// into the vault and initializes the listing record.
func CreateListing(programID solana.PublicKey, p CreateListingParams) (solana.Instruction, error) {
	data, err := encodeArgs(createListingDisc, p.Ask, p.ListingBump, p.NFTVaultBump)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Seller, true, true),
		solana.NewAccountMeta(p.Listing, true, false),
		solana.NewAccountMeta(p.Market, false, false),
		solana.NewAccountMeta(p.NFTVault, true, false),
		solana.NewAccountMeta(p.NFTAccount, true, false),
		solana.NewAccountMeta(p.NFTMint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// AskParams holds the derived addresses and arguments for repricing.
type AskParams struct {
	Market      solana.PublicKey
	Seller      solana.PublicKey
	Listing     solana.PublicKey
	NFTMint     solana.PublicKey
	NewAsk      uint64
	ListingBump uint8
}

// Ask builds the instruction that changes a listing's ask price. Only the
// ask field of the record is touched; the program rejects callers other
// than the seller.
func Ask(programID solana.PublicKey, p AskParams) (solana.Instruction, error) {
	data, err := encodeArgs(askDisc, p.NewAsk, p.ListingBump)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Seller, true, true),
		solana.NewAccountMeta(p.Listing, true, false),
		solana.NewAccountMeta(p.Market, false, false),
		solana.NewAccountMeta(p.NFTMint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// BuyParams holds the derived addresses and arguments for a purchase.
// BuyerNFTAccount is a freshly generated account that receives the token;
// it signs the transaction because the program creates it.
type BuyParams struct {
	Market          solana.PublicKey
	Buyer           solana.PublicKey
	BuyerNFTAccount solana.PublicKey
	Listing         solana.PublicKey
	Seller          solana.PublicKey
	MarketVault     solana.PublicKey
	NFTVault        solana.PublicKey
	NFTMint         solana.PublicKey
	ListingBump     uint8
	MarketVaultBump uint8
	NFTVaultBump    uint8
}

// Buy builds the instruction that atomically pays the seller through the
// market vault, releases the token from escrow, and closes the listing.
func Buy(programID solana.PublicKey, p BuyParams) (solana.Instruction, error) {
	data, err := encodeArgs(buyDisc, p.ListingBump, p.MarketVaultBump, p.NFTVaultBump)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Buyer, true, true),
		solana.NewAccountMeta(p.BuyerNFTAccount, true, true),
		solana.NewAccountMeta(p.Listing, true, false),
		solana.NewAccountMeta(p.Seller, true, false),
		solana.NewAccountMeta(p.Market, false, false),
		solana.NewAccountMeta(p.MarketVault, true, false),
		solana.NewAccountMeta(p.NFTVault, true, false),
		solana.NewAccountMeta(p.NFTMint, false, false),
		solana.NewAccountMeta(core.NativeMint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// CloseListingParams holds the derived addresses and arguments for
// withdrawing a listing. SellerNFTAccount is a freshly generated account the
// escrowed token is returned to.
type CloseListingParams struct {
	Market           solana.PublicKey
	Seller           solana.PublicKey
	SellerNFTAccount solana.PublicKey
	Listing          solana.PublicKey
	NFTVault         solana.PublicKey
	NFTMint          solana.PublicKey
	ListingBump      uint8
	NFTVaultBump     uint8
}

// CloseListing builds the instruction that returns the escrowed token to
// the seller and reclaims the rent held by the listing and vault.
func CloseListing(programID solana.PublicKey, p CloseListingParams) (solana.Instruction, error) {
	data, err := encodeArgs(closeListingDisc, p.ListingBump, p.NFTVaultBump)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Seller, true, true),
		solana.NewAccountMeta(p.SellerNFTAccount, true, true),
		solana.NewAccountMeta(p.NFTVault, true, false),
		solana.NewAccountMeta(p.Listing, true, false),
		solana.NewAccountMeta(p.Market, false, false),
		solana.NewAccountMeta(p.NFTMint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
