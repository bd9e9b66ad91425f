package usecase

import "fmt"

// BootstrapMessage is the documented synthetic first user turn sent at
// session creation to elicit the model's welcome reply. It is stored in the
// history like any other user turn.
const BootstrapMessage = "Hello"

// welcomeContextSummary is logged as the context summary of the kickoff
// interaction, which runs before any retrieval exists.
const welcomeContextSummary = "System-generated welcome"

const systemInstructionTemplate = `You are a friendly, expert AI shopping assistant for "%[1]s".
Your primary goal is to help users find products or information within this store using the context I provide.
You will be given relevant product and article snippets based on the user's query from the store's database.
Base your answers primarily on these provided snippets.
If the provided snippets are not relevant or insufficient, clearly state that you couldn't find specific information in the current context. Do not make up information.
When suggesting products or articles from the snippets, always mention their full titles.
Product links should be in the format: https://%[2]s/products/{product_handle}
Article links should be in the format: https://%[2]s/blogs/{blog_handle}/{article_handle} (assume the blog_handle is 'news' or 'blog' if not specified in the snippet, try 'news' first).
Be helpful, polite, and strictly stick to the information provided.
Start the conversation with a friendly welcome message and ask how you can assist the user with their shopping needs at "%[1]s" today.`

// systemInstruction builds the persona instruction bound to the model handle
// at session creation. It is set exactly once; composing it again per turn
// would double-count the persona constraints.
func systemInstruction(storeName, storeDomain string) string {
	return fmt.Sprintf(systemInstructionTemplate, storeName, storeDomain)
}

// composeGroundedMessage interpolates the assembled context block and the raw
// user query into the single synthetic user turn sent to the model. Context
// first, query second, both labeled.
func composeGroundedMessage(contextBlock, userQuery string) string {
	return fmt.Sprintf("CONTEXT FOR YOUR RESPONSE:\n%s\n\nUSER QUERY:\n%s", contextBlock, userQuery)
}
