package constant

import "errors"

var (
	InsufficientContributionError = errors.New("You should at least send 0.001 ether")

	AlreadyRegisteredError = errors.New("Already registered")

	UnauthorizedError = errors.New("Only the organizer can pick a winner")

	IndexOutOfRangeError = errors.New("Participator index out of range")

	NoParticipantsError = errors.New("No participants in the current round")

	InsufficientFundsError = errors.New("Account balance too low for this contribution")

	AccountNotExistError = errors.New("Account does not exist")

	AccountExistError = errors.New("Account already exists")

	BalanceOverflowError = errors.New("Balance overflow")

	ReceiveLimitError = errors.New("Faucet limit reached, try again tomorrow")

	NotDeployedError = errors.New("Lottery is not deployed")

	InvalidAddressError = errors.New("Invalid address")

	LoginFailedError = errors.New("Login failed, check your credentials")

	BalanceTooHighError = errors.New("Balance too high to receive from the faucet")
)
