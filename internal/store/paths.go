package store

import "strings"

const (
	usersCollection        = "users"
	accountsCollection     = "accounts"
	transactionsCollection = "transactions"
	debtsCollection        = "debts"
	paluwagansCollection   = "paluwagans"
)

// Join builds a document or collection path from its segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split returns the collection path and the document ID of path.
func Split(path string) (collection, id string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

func UsersCollection() string { return usersCollection }

func UserPath(uid string) string { return Join(usersCollection, uid) }

func AccountsCollection(uid string) string { return Join(usersCollection, uid, accountsCollection) }

func AccountPath(uid, id string) string { return Join(AccountsCollection(uid), id) }

func TransactionsCollection(uid string) string {
	return Join(usersCollection, uid, transactionsCollection)
}

func TransactionPath(uid, id string) string { return Join(TransactionsCollection(uid), id) }

func DebtsCollection(uid string) string { return Join(usersCollection, uid, debtsCollection) }

func DebtPath(uid, id string) string { return Join(DebtsCollection(uid), id) }

func PaluwagansCollection(uid string) string {
	return Join(usersCollection, uid, paluwagansCollection)
}

func PaluwaganPath(uid, id string) string { return Join(PaluwagansCollection(uid), id) }
